package domain

// Predicate restricts a query to documents whose Path equals Value.
type Predicate struct {
	Path  string
	Value string
}

// At builds an equality predicate.
func At(path, value string) Predicate {
	return Predicate{Path: path, Value: value}
}

type Query struct {
	Predicates []Predicate
	Fetch      []string
	PageSize   int
	Page       int
}

type QueryResponse struct {
	Page       int
	TotalPages int
	Results    []Document
	NextPage   *string
}
