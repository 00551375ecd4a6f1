// Package service provides application-level services for managing
// memories, users, and their generated insights. Services own transaction
// boundaries and ownership checks; handlers above them stay thin and
// stores below them stay dumb.
package service
