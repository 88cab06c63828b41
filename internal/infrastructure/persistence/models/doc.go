// Package models contains GORM persistence models for the order and return tables.
//
// Domain types in internal/domain/trade carry no ORM tags. Each model here owns
// its table mapping and converts to and from the domain with ToDomain and
// FromDomain. JSON blob columns (quantity and price maps, selected lines) are
// decoded tolerantly so malformed historical rows load as empty values.
package models
