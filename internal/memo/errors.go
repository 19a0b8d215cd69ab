package memo

import "fmt"

// NotFoundError reports an id (or index) that is not in the repository.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("memo not found: %s", e.ID)
}

// LastMemoError is returned when deleting would leave the repository empty.
type LastMemoError struct {
	ID string
}

func (e *LastMemoError) Error() string {
	return "cannot delete the last memo"
}
