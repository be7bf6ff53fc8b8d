package utils

var BuildVersion string
var BuildRelease string

func GetBuildVersion() string {
	if BuildVersion == "" {
		return "dev"
	}
	return BuildVersion
}
