package chat

// Property is a read-only projection of the marketplace property table,
// just enough to resolve the conversation owner. Property CRUD lives in
// another service.
type Property struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	IsDeleted bool   `db:"is_deleted"`
}
