// Package datasets loads bear GPS-collar telemetry from the bundled CSV
// exports and prepares it for sequence modeling.
//
// The raw data ships as a zip archive holding one CSV per sex
// (maleclean4.csv, femaleclean4.csv). Unpack extracts the archive on first
// run, Load concatenates the two files into a single observation Table, and
// Window turns a scaled feature matrix into the overlapping fixed-length
// sequences the recurrent model consumes.
//
// Notes on gomlx tensors:
//   - Windowed batches are kept as contiguous float32 buffers plus shape
//     metadata (WindowBatchFlat). These convert directly into gomlx tensors
//     via ToGomlxTensors for use with gomlx training loops, without tying the
//     rest of the package to a particular tensor API.
package datasets

// Column names the pipeline depends on. Everything else in the CSVs is
// treated as an opaque numeric feature.
const (
	// SubjectColumn identifies the tracked animal.
	SubjectColumn = "Bear_ID"

	// FIDColumn is the fix identifier; rows with an empty FID are
	// misformatted exports and get dropped at load time.
	FIDColumn = "FID"

	// StepLengthColumn and TurnAngleColumn are the two movement-derived
	// fields the wandering label is computed from. They are excluded from
	// the feature set.
	StepLengthColumn = "STEPLENGTH"
	TurnAngleColumn  = "TURNANGLE"

	// TimestampColumn is bookkeeping, never a feature.
	TimestampColumn = "datetime"

	// IndexColumn is the leading row-index artifact some exports carry;
	// it surfaces from the CSV header with an empty name and is never a
	// feature.
	IndexColumn = ""
)
