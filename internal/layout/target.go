package layout

import "fmt"

// Target describes the ABI target triple and its pointer properties.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
	}
}

var knownTargets = map[string]Target{
	"x86_64-linux-gnu":  X86_64LinuxGNU(),
	"aarch64-linux-gnu": {Triple: "aarch64-linux-gnu", PtrSize: 8, PtrAlign: 8},
	"i686-linux-gnu":    {Triple: "i686-linux-gnu", PtrSize: 4, PtrAlign: 4},
	"wasm32-unknown":    {Triple: "wasm32-unknown", PtrSize: 4, PtrAlign: 4},
}

// LookupTarget returns the target for a known triple.
func LookupTarget(triple string) (Target, error) {
	if t, ok := knownTargets[triple]; ok {
		return t, nil
	}
	return Target{}, fmt.Errorf("unknown target %q", triple)
}
