package entity

// ArtifactKind identifies a downloadable provisioning artifact.
type ArtifactKind int

const (
	// ArtifactUnknown is the zero value for unrecognized names.
	ArtifactUnknown ArtifactKind = iota
	// ArtifactQR is the provisioning QR code image.
	ArtifactQR
	// ArtifactBundle is the pre-seeded token software bundle.
	ArtifactBundle
)

// Artifact is a rendered download payload together with the HTTP
// metadata needed to stream it.
type Artifact struct {
	// Body is the full artifact content.
	Body []byte
	// ContentType is the MIME type for the response.
	ContentType string
	// Filename, when set, is sent as an attachment disposition.
	Filename string
}
