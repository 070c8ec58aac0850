// Package model holds the registry's domain types: the shared person
// record and the two role records (trainer and trainee) built on top of it.
//
// JSON names follow the registry's wire format, which keeps the German
// column names of the underlying tables.
package model
