package llmtools

import (
	"strings"
	"testing"
	"time"
)

func TestFormatSystemInfo(t *testing.T) {
	info := SystemInfo{
		Platform: PlatformInfo{
			Hostname:        "testhost",
			OS:              "linux",
			Platform:        "debian",
			PlatformVersion: "12",
			KernelVersion:   "6.1.0",
			Architecture:    "x86_64",
		},
		Runtime: RuntimeInfo{
			Version:    "go1.24.0",
			Goroutines: 8,
		},
		CPU: CPUInfo{
			PhysicalCores: 4,
			LogicalCores:  8,
			ModelName:     "Test CPU @ 3.00GHz",
			FrequencyMHz:  3000,
			UsagePercent:  12.5,
		},
		Memory: MemoryInfo{
			Total:       16 * 1024 * 1024 * 1024,
			Available:   8 * 1024 * 1024 * 1024,
			Used:        8 * 1024 * 1024 * 1024,
			UsedPercent: 50.0,
		},
		Disks: []DiskInfo{
			{
				Device:      "/dev/sda1",
				Mountpoint:  "/",
				Fstype:      "ext4",
				Total:       512 * 1024 * 1024 * 1024,
				Used:        256 * 1024 * 1024 * 1024,
				Free:        256 * 1024 * 1024 * 1024,
				UsedPercent: 50.0,
			},
		},
		Network: NetworkInfo{
			BytesSent:   100 * 1024 * 1024,
			BytesRecv:   200 * 1024 * 1024,
			PacketsSent: 1000,
			PacketsRecv: 2000,
		},
		BootTime: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	output := formatSystemInfo(info)

	for _, want := range []string{
		"testhost",
		"linux",
		"debian",
		"6.1.0",
		"x86_64",
		"go1.24.0",
		"Test CPU @ 3.00GHz",
		"Physical cores: 4",
		"Logical cores: 8",
		"3000.00 MHz",
		"12.5%",
		"16.00 GB",
		"50.0%",
		"/dev/sda1",
		"ext4",
		"100.00 MB",
		"1000 packets",
		"2026-01-01 12:00:00",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatSystemInfoOmitsEmptySections(t *testing.T) {
	output := formatSystemInfo(SystemInfo{})

	if output == "" {
		t.Fatal("formatSystemInfo should never produce empty output")
	}
	if strings.Contains(output, "Disks:") {
		t.Error("disk section should be omitted when no partitions were readable")
	}
	if strings.Contains(output, "Model:") {
		t.Error("CPU model line should be omitted when unknown")
	}
	if strings.Contains(output, "Frequency:") {
		t.Error("frequency line should be omitted when unknown")
	}
}
