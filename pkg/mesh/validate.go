package mesh

import "fmt"

// ValidationSeverity indicates whether a finding makes query results
// meaningless or only less reliable.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // results are not meaningful
	SeverityWarning                           // results are best effort
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Code     string
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate inspects the mesh for conditions that affect query results.
// Index errors are rejected by New, so a mesh from New only ever yields
// warnings except when it has no faces at all.
func (m *Mesh) Validate() ValidationResult {
	var r ValidationResult
	if len(m.Faces) == 0 {
		r.Errors = append(r.Errors, ValidationError{
			Code:     "NO_FACES",
			Message:  "mesh has no faces; surface queries are undefined",
			Severity: SeverityError,
		})
		return r
	}

	if deg := m.DegenerateFaces(); len(deg) > 0 {
		r.Warnings = append(r.Warnings, ValidationError{
			Code:     "DEGENERATE_FACES",
			Message:  fmt.Sprintf("%d faces with zero area (first: %d)", len(deg), deg[0]),
			Severity: SeverityWarning,
		})
	}
	if n := m.BoundaryEdges(); n > 0 {
		r.Warnings = append(r.Warnings, ValidationError{
			Code:     "OPEN_BOUNDARY",
			Message:  fmt.Sprintf("%d boundary edges; inside/outside is ill-posed", n),
			Severity: SeverityWarning,
		})
	}
	if n := m.NonManifoldEdges(); n > 0 {
		r.Warnings = append(r.Warnings, ValidationError{
			Code:     "NON_MANIFOLD",
			Message:  fmt.Sprintf("%d edges shared by more than two faces", n),
			Severity: SeverityWarning,
		})
	}
	if !m.IsWindingConsistent() {
		r.Warnings = append(r.Warnings, ValidationError{
			Code:     "INCONSISTENT_WINDING",
			Message:  "neighbouring faces disagree on orientation",
			Severity: SeverityWarning,
		})
	}
	if m.IsWatertight() && m.Volume() < 0 {
		r.Warnings = append(r.Warnings, ValidationError{
			Code:     "INVERTED",
			Message:  "faces wind inward; signed distances will be negated",
			Severity: SeverityWarning,
		})
	}
	return r
}
