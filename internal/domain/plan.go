package domain

// Plan is an ordered list of artifacts to deploy to one network.
type Plan struct {
	// Path of the plan file the artifacts are relative to
	Path      string
	Network   string
	Artifacts []string
}

// IPFSEntry is one file or directory added to IPFS.
type IPFSEntry struct {
	Name string
	Hash string
	Size string
}
