package members

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// AddInput registers a member. Jamiyat and Jamaat accept either the stored text or its numeric code.
type AddInput struct {
	ITSID    string
	FullName string
	Email    string

	// Roles wins over Rank; with neither the member is a plain Member.
	Roles *int
	Rank  string

	Jamiyat *string
	Jamaat  *string
	Gender  *string
	Age     *int
	Contact *string

	// Password, when set, becomes the seeded password the member must change on first login.
	Password *string
}

// EditInput is the admin edit. Unspecified fields keep their value; null clears optional fields.
type EditInput struct {
	ITSID    Optional[string] // cannot be null
	FullName Optional[string] // cannot be null
	Email    Optional[string] // cannot be null
	Roles    Optional[int]
	Rank     Optional[string]
	Jamiyat  Optional[string]
	Jamaat   Optional[string]
	Gender   Optional[string]
	Age      Optional[int]
	Contact  Optional[string]
	IsActive Optional[bool] // cannot be null
}

// ProfileInput is the self-service edit, limited to name, email and contact.
type ProfileInput struct {
	FullName Optional[string] // cannot be null
	Email    Optional[string] // cannot be null
	Contact  Optional[string] // may be null
}
