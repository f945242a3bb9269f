package domain

import "path"

// ArtifactKind selects the codec used to persist an artifact.
type ArtifactKind string

const (
	ArtifactTable  ArtifactKind = "table"
	ArtifactArray  ArtifactKind = "array"
	ArtifactModel  ArtifactKind = "trained-model"
	ArtifactOnnx   ArtifactKind = "onnx"
	ArtifactJSON   ArtifactKind = "json"
	ArtifactObject ArtifactKind = "object"
	ArtifactHTML   ArtifactKind = "html"
)

// Suffix returns the fixed on-disk suffix for the artifact kind. Load-side
// path resolution relies on these being stable, never inferred.
func (k ArtifactKind) Suffix() string {
	switch k {
	case ArtifactTable:
		return ".table.json"
	case ArtifactArray:
		return ".array.json"
	case ArtifactModel:
		return ".model"
	case ArtifactOnnx:
		return ".onnx"
	case ArtifactJSON:
		return ".json"
	case ArtifactObject:
		return ".gob"
	case ArtifactHTML:
		return ".html"
	default:
		return ""
	}
}

// Fixed filenames for card artifacts. Combined with the card URI directory
// and the kind suffix they fully determine every artifact path.
const (
	SaveNameCard         = "card"
	SaveNameData         = "data"
	SaveNameProfile      = "data-profile"
	SaveNameTrainedModel = "trained-model"
	SaveNameSampleData   = "sample-data"
	SaveNamePreprocessor = "preprocessor"
	SaveNameOnnxModel    = "onnx-model"
	SaveNameMetadata     = "model-metadata"
	SaveNameRunCard      = "runcard"
	SaveNameAudit        = "audit"
)

// StoragePath describes where a stored artifact lives. Purely structural;
// it owns no bytes.
type StoragePath struct {
	URI string
}

// ArtifactStorageSpec is the write-side counterpart of StoragePath: the
// directory, filename and optional extra path segment an artifact is
// written under. Resolved once per artifact write from the card's own URI
// directory so updates overwrite the same logical slot.
type ArtifactStorageSpec struct {
	SavePath  string
	Filename  string
	ExtraPath string
}

// RemotePath joins the spec into a full remote path with the given suffix.
func (s ArtifactStorageSpec) RemotePath(suffix string) string {
	return path.Join(s.SavePath, s.ExtraPath, s.Filename) + suffix
}
