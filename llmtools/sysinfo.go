package llmtools

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	gopsnet "github.com/shirou/gopsutil/v4/net"
	"github.com/vkoski/infotools/toolkit"
)

// SystemInfo holds a snapshot of the local host's software and hardware state
type SystemInfo struct {
	Platform PlatformInfo
	Runtime  RuntimeInfo
	CPU      CPUInfo
	Memory   MemoryInfo
	Disks    []DiskInfo
	Network  NetworkInfo
	BootTime time.Time
}

// PlatformInfo describes the operating system
type PlatformInfo struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Architecture    string
}

// RuntimeInfo describes the Go runtime the service runs on
type RuntimeInfo struct {
	Version    string
	Goroutines int
}

// CPUInfo describes the processors
type CPUInfo struct {
	PhysicalCores int
	LogicalCores  int
	ModelName     string
	FrequencyMHz  float64
	UsagePercent  float64
}

// MemoryInfo describes virtual memory usage in bytes
type MemoryInfo struct {
	Total       uint64
	Available   uint64
	Used        uint64
	UsedPercent float64
}

// DiskInfo describes one mounted partition
type DiskInfo struct {
	Device      string
	Mountpoint  string
	Fstype      string
	Total       uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
}

// NetworkInfo holds aggregate network I/O counters since boot
type NetworkInfo struct {
	BytesSent   uint64
	BytesRecv   uint64
	PacketsSent uint64
	PacketsRecv uint64
}

// collectSystemInfo gathers the system snapshot. Individual probes that fail
// leave their section empty instead of failing the whole snapshot.
func collectSystemInfo(ctx context.Context) (SystemInfo, error) {
	var info SystemInfo

	hostInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to read host information")
		return info, fmt.Errorf("failed to read host information: %w", err)
	}

	info.Platform = PlatformInfo{
		Hostname:        hostInfo.Hostname,
		OS:              hostInfo.OS,
		Platform:        hostInfo.Platform,
		PlatformVersion: hostInfo.PlatformVersion,
		KernelVersion:   hostInfo.KernelVersion,
		Architecture:    hostInfo.KernelArch,
	}
	info.BootTime = time.Unix(int64(hostInfo.BootTime), 0)

	info.Runtime = RuntimeInfo{
		Version:    runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
	}

	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.CPU.PhysicalCores = physical
	}
	if logical, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.CPU.LogicalCores = logical
	}
	if cpuInfos, err := cpu.InfoWithContext(ctx); err == nil && len(cpuInfos) > 0 {
		info.CPU.ModelName = cpuInfos[0].ModelName
		info.CPU.FrequencyMHz = cpuInfos[0].Mhz
	}
	if percents, err := cpu.PercentWithContext(ctx, time.Second, false); err == nil && len(percents) > 0 {
		info.CPU.UsagePercent = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.Memory = MemoryInfo{
			Total:       vm.Total,
			Available:   vm.Available,
			Used:        vm.Used,
			UsedPercent: vm.UsedPercent,
		}
	}

	if partitions, err := disk.PartitionsWithContext(ctx, false); err == nil {
		for _, partition := range partitions {
			usage, err := disk.UsageWithContext(ctx, partition.Mountpoint)
			if err != nil {
				// some mountpoints are not accessible to the process
				continue
			}
			info.Disks = append(info.Disks, DiskInfo{
				Device:      partition.Device,
				Mountpoint:  partition.Mountpoint,
				Fstype:      partition.Fstype,
				Total:       usage.Total,
				Used:        usage.Used,
				Free:        usage.Free,
				UsedPercent: usage.UsedPercent,
			})
		}
	}

	if counters, err := gopsnet.IOCountersWithContext(ctx, false); err == nil && len(counters) > 0 {
		info.Network = NetworkInfo{
			BytesSent:   counters[0].BytesSent,
			BytesRecv:   counters[0].BytesRecv,
			PacketsSent: counters[0].PacketsSent,
			PacketsRecv: counters[0].PacketsRecv,
		}
	}

	return info, nil
}

func gigabytes(bytes uint64) float64 {
	return float64(bytes) / (1024 * 1024 * 1024)
}

func megabytes(bytes uint64) float64 {
	return float64(bytes) / (1024 * 1024)
}

// formatSystemInfo renders a system snapshot as human-readable text
func formatSystemInfo(info SystemInfo) string {
	var sb strings.Builder

	sb.WriteString("**System information**\n\n")

	sb.WriteString("Operating system:\n")
	sb.WriteString(fmt.Sprintf("  Hostname: %s\n", info.Platform.Hostname))
	sb.WriteString(fmt.Sprintf("  OS: %s (%s %s)\n", info.Platform.OS, info.Platform.Platform, info.Platform.PlatformVersion))
	sb.WriteString(fmt.Sprintf("  Kernel: %s\n", info.Platform.KernelVersion))
	sb.WriteString(fmt.Sprintf("  Architecture: %s\n", info.Platform.Architecture))

	sb.WriteString("\nGo runtime:\n")
	sb.WriteString(fmt.Sprintf("  Version: %s\n", info.Runtime.Version))
	sb.WriteString(fmt.Sprintf("  Goroutines: %d\n", info.Runtime.Goroutines))

	sb.WriteString("\nCPU:\n")
	if info.CPU.ModelName != "" {
		sb.WriteString(fmt.Sprintf("  Model: %s\n", info.CPU.ModelName))
	}
	sb.WriteString(fmt.Sprintf("  Physical cores: %d\n", info.CPU.PhysicalCores))
	sb.WriteString(fmt.Sprintf("  Logical cores: %d\n", info.CPU.LogicalCores))
	if info.CPU.FrequencyMHz > 0 {
		sb.WriteString(fmt.Sprintf("  Frequency: %.2f MHz\n", info.CPU.FrequencyMHz))
	}
	sb.WriteString(fmt.Sprintf("  Usage: %.1f%%\n", info.CPU.UsagePercent))

	sb.WriteString("\nMemory:\n")
	sb.WriteString(fmt.Sprintf("  Total: %.2f GB\n", gigabytes(info.Memory.Total)))
	sb.WriteString(fmt.Sprintf("  Available: %.2f GB\n", gigabytes(info.Memory.Available)))
	sb.WriteString(fmt.Sprintf("  Used: %.2f GB (%.1f%%)\n", gigabytes(info.Memory.Used), info.Memory.UsedPercent))

	if len(info.Disks) > 0 {
		sb.WriteString("\nDisks:\n")
		for _, d := range info.Disks {
			sb.WriteString(fmt.Sprintf("  %s (%s) at %s:\n", d.Device, d.Fstype, d.Mountpoint))
			sb.WriteString(fmt.Sprintf("    Total: %.2f GB\n", gigabytes(d.Total)))
			sb.WriteString(fmt.Sprintf("    Used: %.2f GB (%.1f%%)\n", gigabytes(d.Used), d.UsedPercent))
			sb.WriteString(fmt.Sprintf("    Free: %.2f GB\n", gigabytes(d.Free)))
		}
	}

	sb.WriteString("\nNetwork:\n")
	sb.WriteString(fmt.Sprintf("  Sent: %.2f MB (%d packets)\n", megabytes(info.Network.BytesSent), info.Network.PacketsSent))
	sb.WriteString(fmt.Sprintf("  Received: %.2f MB (%d packets)\n", megabytes(info.Network.BytesRecv), info.Network.PacketsRecv))

	sb.WriteString(fmt.Sprintf("\nBoot time: %s\n", info.BootTime.Format("2006-01-02 15:04:05")))

	return sb.String()
}

// SystemInfoToolDefinition returns the tool definition for the system information tool
var SystemInfoToolDefinition = toolkit.Definition{
	Type: "function",
	Function: toolkit.FunctionSchema{
		Name:        "get_system_information",
		Description: "Get detailed software and hardware information about the local host: OS version, CPU cores and usage, memory, disk partitions, network counters and boot time. Takes no parameters.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	Handler:          handleSystemInfoToolCall,
	ValidityDuration: 1 * time.Minute,
}

func handleSystemInfoToolCall(ctx context.Context, arguments string) (string, error) {
	log.Debug().Ctx(ctx).Msg("Received system information tool call")

	info, err := collectSystemInfo(ctx)
	if err != nil {
		return "", err
	}

	result := formatSystemInfo(info)
	log.Debug().Ctx(ctx).Int("response_length", len(result)).Msg("System information collected")

	return result, nil
}
