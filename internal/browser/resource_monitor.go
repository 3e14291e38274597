package browser

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceMonitorConfig 资源检查配置
type ResourceMonitorConfig struct {
	MinAvailableMemory int64 // 可用内存下限(字节)
	CPULoadThreshold   int   // CPU负载阈值(%), >=200 视为禁用
}

// MemoryStatus 内存状态信息
type MemoryStatus struct {
	TotalMemory     uint64  // 系统总内存(字节)
	AvailableMemory uint64  // 可用内存(字节)
	CPUUsage        float64 // CPU使用率(%)
	MemoryPressure  string  // 内存压力等级
}

// ResourceMonitor 系统资源检查
// 连接浏览器前采样一次内存与CPU, 资源紧张时只记录警告
type ResourceMonitor struct {
	config ResourceMonitorConfig

	// 采样函数, 测试时可替换
	memSampler func() (total, available uint64, err error)
	cpuSampler func() (float64, error)
}

// NewResourceMonitor 创建资源检查器
func NewResourceMonitor(config ResourceMonitorConfig) *ResourceMonitor {
	return &ResourceMonitor{
		config:     config,
		memSampler: sampleMemory,
		cpuSampler: sampleCPU,
	}
}

func sampleMemory() (uint64, uint64, error) {
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	return vmStat.Total, vmStat.Available, nil
}

func sampleCPU() (float64, error) {
	// perCPU=false 返回所有核心的平均使用率
	percentages, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("CPU使用率数据为空")
	}
	return percentages[0], nil
}

// GetMemoryStatus 采样当前资源状态
func (rm *ResourceMonitor) GetMemoryStatus() MemoryStatus {
	var status MemoryStatus

	total, available, err := rm.memSampler()
	if err != nil {
		log.Warn().Err(err).Msg("获取系统内存失败")
	} else {
		status.TotalMemory = total
		status.AvailableMemory = available
	}

	if rm.config.CPULoadThreshold < 200 {
		usage, err := rm.cpuSampler()
		if err != nil {
			log.Warn().Err(err).Msg("获取CPU使用率失败")
		}
		status.CPUUsage = usage
	}

	availableMB := status.AvailableMemory / (1024 * 1024)
	switch {
	case status.TotalMemory == 0:
		status.MemoryPressure = "unknown"
	case availableMB < 200:
		status.MemoryPressure = "emergency"
	case availableMB < 500:
		status.MemoryPressure = "warning"
	default:
		status.MemoryPressure = "normal"
	}
	return status
}

// CheckResourceAvailability 检查资源是否足够驱动一个标签页
// 返回ok(是否充足)和reason(不足时的原因)
func (rm *ResourceMonitor) CheckResourceAvailability() (ok bool, reason string) {
	status := rm.GetMemoryStatus()

	if status.TotalMemory > 0 && int64(status.AvailableMemory) < rm.config.MinAvailableMemory {
		return false, fmt.Sprintf("内存不足(当前%dMB)", status.AvailableMemory/(1024*1024))
	}

	if rm.config.CPULoadThreshold < 200 && status.CPUUsage > float64(rm.config.CPULoadThreshold) {
		return false, fmt.Sprintf("CPU负载过高(当前%.1f%%)", status.CPUUsage)
	}

	return true, ""
}
