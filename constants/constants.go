package constants

import "os"

func GetOutputDir() string {
	path := os.Getenv("KERNGRID_OUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// GetLogPath is empty when diagnostics are disabled.
func GetLogPath() string {
	return os.Getenv("KERNGRID_LOG_PATH")
}

// GetMetadataEndpoint is empty when no metadata table is configured.
func GetMetadataEndpoint() string {
	return os.Getenv("KERNGRID_DYNAMODB_ENDPOINT")
}

func GetMetadataTable() string {
	table := os.Getenv("KERNGRID_DYNAMODB_TABLE")
	if table != "" {
		return table
	}
	return "kerngrid-metadata"
}

func GetMetadataRegion() string {
	region := os.Getenv("AWS_REGION")
	if region != "" {
		return region
	}
	return "localhost"
}

func GetPort() string {
	port := os.Getenv("PORT")
	if port != "" {
		return port
	}
	return "8080"
}

// MaxPartCount bounds the per-part bookkeeping of a grid.
const MaxPartCount = 100

// MaxStaffCount and MaxVoiceCount bound the staves of a part and the
// voices of a staff accepted from a score.
const (
	MaxStaffCount = 16
	MaxVoiceCount = 16
)

// DynamoDB BatchGetItem accepts at most this many keys per request in
// our usage.
const MetadataBatchSize = 10

const ManifestFilename = "manifest.dat"

const OutputExtension = ".krn"
