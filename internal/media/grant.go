package media

// Grant is a pre-signed upload capability for exactly one object. UploadURL
// authorizes a single PUT for a fixed window; PublicURL is where the object
// can be read once it exists.
type Grant struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Key       string `json:"key"`
}
