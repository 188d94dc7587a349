package transcriber

import (
	"os"
	"os/exec"
	"runtime"
)

// ExecutionProfile is the resolved inference configuration. It is computed
// once at startup and consumed immutably afterwards; nothing re-detects
// hardware mid-session.
type ExecutionProfile struct {
	Device    string // "cuda" or "cpu"
	Precision string // "float16" on gpu, "int8" on cpu
	Threads   int
}

// DevicePreference values accepted from configuration.
const (
	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceGPU  = "gpu"
)

// ResolveProfile picks the execution profile for the given preference.
// "gpu" and "auto" use CUDA when an NVIDIA device is present; "cpu" and
// detection failure fall back to int8 on the CPU.
func ResolveProfile(preference string) ExecutionProfile {
	threads := runtime.NumCPU()
	if preference != DeviceCPU && hasCUDA() {
		return ExecutionProfile{Device: "cuda", Precision: "float16", Threads: threads}
	}
	return ExecutionProfile{Device: "cpu", Precision: "int8", Threads: threads}
}

func hasCUDA() bool {
	if runtime.GOOS == "linux" {
		if _, err := os.Stat("/proc/driver/nvidia/version"); err == nil {
			return true
		}
	}
	_, err := exec.LookPath("nvidia-smi")
	return err == nil
}
