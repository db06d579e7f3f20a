package api

const loginSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["email", "password"],
  "properties": {
    "email": {"type": "string", "minLength": 3, "maxLength": 255},
    "password": {"type": "string", "minLength": 1, "maxLength": 255}
  }
}`

const createCondominiumSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 255},
    "address": {"type": "string", "maxLength": 512},
    "city": {"type": "string", "maxLength": 255}
  }
}`

const createBuildingSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["condominium_id", "name"],
  "properties": {
    "condominium_id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1, "maxLength": 255},
    "floors": {"type": "integer", "minimum": 0}
  }
}`

const createUnitSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["building_id", "number"],
  "properties": {
    "building_id": {"type": "string", "minLength": 1},
    "number": {"type": "string", "minLength": 1, "maxLength": 50},
    "floor": {"type": "integer"},
    "owner_id": {"type": "string"}
  }
}`

const createOwnerSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 255},
    "email": {"type": "string", "maxLength": 255},
    "phone": {"type": "string", "maxLength": 50},
    "document": {"type": "string", "maxLength": 100}
  }
}`

const createTenantSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["unit_id", "name"],
  "properties": {
    "unit_id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1, "maxLength": 255},
    "phone": {"type": "string", "maxLength": 50},
    "since": {"type": "string", "maxLength": 30}
  }
}`

// Amounts arrive either as JSON numbers or as decimal strings; both decode
// into decimal.Decimal.
const amountSchema = `{
    "anyOf": [
      {"type": "number"},
      {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?$"}
    ]
  }`

const createAccountSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["owner_id"],
  "properties": {
    "owner_id": {"type": "string", "minLength": 1},
    "description": {"type": "string", "maxLength": 512},
    "opening_balance": ` + amountSchema + `
  }
}`

const recordMovementSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["kind", "amount"],
  "properties": {
    "date": {"type": "string"},
    "description": {"type": "string", "maxLength": 512},
    "kind": {"type": "string", "minLength": 1, "maxLength": 30},
    "amount": ` + amountSchema + `
  }
}`

const createUserSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["email", "name", "role", "password"],
  "properties": {
    "email": {"type": "string", "minLength": 3, "maxLength": 255},
    "name": {"type": "string", "minLength": 1, "maxLength": 255},
    "role": {"type": "string", "minLength": 1, "maxLength": 50},
    "password": {"type": "string", "minLength": 8, "maxLength": 255}
  }
}`

const createPaymentSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["unit_id", "owner_id", "account_id", "period", "amount"],
  "properties": {
    "unit_id": {"type": "string", "minLength": 1},
    "owner_id": {"type": "string", "minLength": 1},
    "account_id": {"type": "string", "minLength": 1},
    "period": {"type": "string", "pattern": "^[0-9]{4}-(0[1-9]|1[0-2])$"},
    "amount": ` + amountSchema + `,
    "method": {"type": "string", "maxLength": 50}
  }
}`
