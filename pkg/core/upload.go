package core

// UploadMetadata describes an exported lineup file for the share server.
type UploadMetadata struct {
	LineupID   string
	LineupName string
	Snapshots  int
	Tag        string
}
