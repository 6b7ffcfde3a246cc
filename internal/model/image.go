package model

// UploadedImage is the result of a successful upload-and-describe request.
//
// Only StoredName has any durability — it is the filename the byte stream
// was persisted under. Description is generated per request and never
// stored; a client that wants the text again must re-upload.
type UploadedImage struct {
	StoredName       string `json:"filename"`
	Description      string `json:"description"`
	DescriptionLevel string `json:"descriptionLevel"`
}
