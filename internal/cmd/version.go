package cmd

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionTemplate = `easybranch {{.Version}}
  commit: ` + GitCommit + `
  built:  ` + BuildDate + `
`
