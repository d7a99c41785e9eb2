package constants

// Quarter lengths a score may use, from a sixteenth to a whole note.
var DefaultAcceptableDurations = []string{"0.25", "0.5", "0.75", "1", "1.5", "2", "3", "4"}

const (
	DefaultTargetMajor = "C"
	DefaultTargetMinor = "A"
)

// In the folk song corpus the key sits at the 4th element of the first measure.
const DefaultExplicitKeyIndex = 4

const (
	KeyStrategyScan     = "scan"
	KeyStrategyPosition = "position"
	KeyStrategyCatalog  = "catalog"
)

var DefaultExtensions = []string{".mid", ".midi"}

const EnvPrefix = "KERNPREP"

const DefaultCatalogTable = "kernprep-keys"

const DefaultAddr = ":8080"

// Largest MIDI body POST /analyze accepts.
const DefaultMaxUploadBytes = 8 * 1024 * 1024
