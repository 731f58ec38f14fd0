package core

import (
	"os"
	"runtime"
	"runtime/pprof"
)

// Profiler wires --cpu-profile/--mem-profile/--block-profile to
// runtime/pprof, ported from fw/cmd/profiler.go unchanged in behavior.
type Profiler struct {
	config  *Config
	cpuFile *os.File
	block   *pprof.Profile
}

func NewProfiler(config *Config) *Profiler { return &Profiler{config: config} }

func (p *Profiler) String() string { return "profiler" }

func (p *Profiler) Start() (err error) {
	if p.config.Core.CpuProfile != "" {
		p.cpuFile, err = os.Create(p.config.Core.CpuProfile)
		if err != nil {
			Log.Fatal(p, "Unable to open output file for CPU profile", "err", err)
		}
		Log.Info(p, "Profiling CPU", "out", p.config.Core.CpuProfile)
		pprof.StartCPUProfile(p.cpuFile)
	}

	if p.config.Core.BlockProfile != "" {
		Log.Info(p, "Profiling blocking operations", "out", p.config.Core.BlockProfile)
		runtime.SetBlockProfileRate(1)
		p.block = pprof.Lookup("block")
	}

	return
}

func (p *Profiler) Stop() {
	if p.block != nil {
		f, err := os.Create(p.config.Core.BlockProfile)
		if err != nil {
			Log.Fatal(p, "Unable to open output file for block profile", "err", err)
		}
		if err := p.block.WriteTo(f, 0); err != nil {
			Log.Fatal(p, "Unable to write block profile", "err", err)
		}
		f.Close()
	}

	if p.config.Core.MemProfile != "" {
		f, err := os.Create(p.config.Core.MemProfile)
		if err != nil {
			Log.Fatal(p, "Unable to open output file for memory profile", "err", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			Log.Fatal(p, "Unable to write memory profile", "err", err)
		}
	}

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
	}
}
