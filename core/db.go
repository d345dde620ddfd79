package core

// DBOrdering is one ORDER BY term of a table query.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// PostgRESTString renders the ordering the way PostgREST `order=` expects it, eg: "name.asc".
func (ord DBOrdering) PostgRESTString() string {
	direction := "desc"
	if ord.Ascending {
		direction = "asc"
	}
	return ord.Field + "." + direction
}
