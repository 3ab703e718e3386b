package constants

import "os"

func GetPort() string {
	port := os.Getenv("PORT")
	if port != "" {
		return port
	}
	return "8000"
}

// GetArchiveBucket returns the S3 bucket generated files are copied to, or
// "" when archiving is disabled.
func GetArchiveBucket() string {
	return os.Getenv("ARCHIVE_BUCKET")
}

func GetAwsRegion() string {
	region := os.Getenv("AWS_REGION")
	if region != "" {
		return region
	}
	return "us-east-1"
}

const DefaultProgram = 0
const DrumChannel = 9

// DefaultResolution matches the library the original service wrapped.
const DefaultResolution = 220

const DefaultTempo = 120.0

// MaxVarLen is the largest value a MIDI variable-length quantity can hold.
const MaxVarLen = 0x0FFFFFFF
