package cloud

import "fmt"

// Tag keys written on every resource this tool creates
const (
	TagOwner      = "CreatedBy"
	TagName       = "Name"
	TagVisibility = "Visibility"
)

// OwnershipError blocks an operation on a resource that does not carry our owner tag
type OwnershipError struct {
	Resource string // e.g. "Bucket", "Hosted zone"
	ID       string
	Untagged bool
}

func (e *OwnershipError) Error() string {
	if e.Untagged {
		return fmt.Sprintf("%s '%s' has no tags - not created by CLI", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s '%s' was not created by this CLI", e.Resource, e.ID)
}

// CheckOwner verifies that tags carry the owner identity
func CheckOwner(resource, id, owner string, tags map[string]string) error {
	if len(tags) == 0 {
		return &OwnershipError{Resource: resource, ID: id, Untagged: true}
	}
	if tags[TagOwner] != owner {
		return &OwnershipError{Resource: resource, ID: id}
	}
	return nil
}
