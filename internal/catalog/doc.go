// Package catalog fetches card printings from a Scryfall-compatible card
// search API and converts them into storage cards.
package catalog
