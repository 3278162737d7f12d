// Package models contains the GORM persistence models behind the storefront
// tables. Domain entities carry no ORM tags; each model converts to and from
// its entity with ToDomain and FromDomain.
package models
