package models

// Page bounds a list query. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}
