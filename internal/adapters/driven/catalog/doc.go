// Package catalog reads the bookstore catalog from a JSON or YAML file
// and watches it for edits.
//
// The file is a sequence of records with the keys
// id, title, genre, author, summary, price and stock.
package catalog
