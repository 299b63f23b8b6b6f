package pipeline

import (
	"os"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tphakala/birdstrike/internal/logger"
)

// checkMemory warns when the inputs are larger than half the available memory.
// The whole pipeline is in memory, so such a run is likely to swap or be killed.
func checkMemory(log logger.Logger, paths ...string) {
	var total int64
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil {
			total += fi.Size()
		}
	}

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		log.Debug("memory check skipped", logger.Error(err))
		return
	}

	if exceedsMemoryBudget(total, vmStat.Available) {
		log.Warn("input files are large compared to available memory",
			logger.Int64("input_bytes", total),
			logger.Uint64("available_bytes", vmStat.Available))
	}
}

func exceedsMemoryBudget(inputBytes int64, available uint64) bool {
	return inputBytes > 0 && uint64(inputBytes) > available/2
}
