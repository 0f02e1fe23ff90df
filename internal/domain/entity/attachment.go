package entity

// AttachmentRef is an opaque reference to a file held by the storage
// collaborator. The workflow never reads the bytes behind it.
type AttachmentRef string

// IsZero returns true when no attachment is referenced
func (a AttachmentRef) IsZero() bool {
	return a == ""
}
