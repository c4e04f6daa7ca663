package lvspace

import (
	"encoding/json"
	"fmt"
	"io"
)

// Outcome is the result of a check.
type Outcome int

const (
	// Success - every group and volume has room.
	Success Outcome = iota

	// GroupSpace - a volume group lacks the free (snapshots) or total
	// (resize) space the batch requests.
	GroupSpace

	// FilesystemType - a volume carries a filesystem that cannot be resized.
	FilesystemType

	// VolumeSpace - a requested size does not exceed the space already used
	// on the volume's filesystem.
	VolumeSpace
)

var outcomeNames = []string{"SUCCESS", "GROUP_SPACE", "FILESYSTEM_TYPE", "VOLUME_SPACE"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}

	return outcomeNames[o]
}

// ExitCode returns the process exit status the outcome is reported with.
// GroupSpace shares 1 with malformed input; callers tell them apart by the
// diagnostic json that only GroupSpace prints.
func (o Outcome) ExitCode() int {
	return int(o)
}

// MarshalJSON for string output rather than int.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON accepts the string name or the integer value.
func (o *Outcome) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}

		*o = Outcome(n)

		return nil
	}

	for i, name := range outcomeNames {
		if name == s {
			*o = Outcome(i)
			return nil
		}
	}

	return fmt.Errorf("unknown outcome %q", s)
}

// VolumeUsage is the diagnostic row of one volume in a failed resize check.
type VolumeUsage struct {
	FSType        string `json:"file_system_type"`
	Used          string `json:"used"`
	RequestedSize string `json:"requested_size"`
}

// Result is the outcome of a check along with the accounting behind it.
type Result struct {
	Outcome Outcome

	// Groups is set when Outcome is GroupSpace.
	Groups GroupSet

	// Volumes is set when Outcome is FilesystemType or VolumeSpace. It is
	// keyed by VolumeRequest.Key.
	Volumes map[string]VolumeUsage
}

// OK reports whether the check passed.
func (r Result) OK() bool {
	return r.Outcome == Success
}

// Payload returns the value printed for a failed check, nil on success.
func (r Result) Payload() interface{} {
	switch r.Outcome {
	case Success:
		return nil
	case GroupSpace:
		return r.Groups
	default:
		return r.Volumes
	}
}

// Write prints the diagnostic of a failed check as a single line of json.
// Nothing is written on success.
func (r Result) Write(w io.Writer) error {
	p := r.Payload()
	if p == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(p)
}
