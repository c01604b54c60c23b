// Command prng-seedctl performs the kernel seed-control tool's
// four-step startup/shutdown ritual: print diagnostics,
// load the persisted seed file into the kernel PRNG, best-effort pull
// additional entropy from a hypervisor if present, then store a fresh
// seed file for next boot. It takes no flags; every step is always
// attempted, and failures accumulate into a bitmask exit code rather
// than short-circuiting.
package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreentropy/ccrng/kernel"
)

const defaultSeedFilePath = "/var/lib/ccrng/seed"

const (
	exitLoadSeedFailed    = 1 << 0
	exitStoreSeedFailed   = 1 << 1
	exitDiagnosticsFailed = 1 << 2
	exitHypervisorFailed  = 1 << 3
)

// errHypervisorNotPresent is returned by the default HypervisorEntropy
// collaborator on hosts without a hypervisor entropy channel.
var errHypervisorNotPresent = errors.New("prng-seedctl: no hypervisor entropy channel present")

// hypervisorEntropy is injectable so tests (and alternate platform
// builds) can simulate a hypervisor entropy channel without vendoring
// any real IOKit/AppleVirtIO-style driver glue, which is out of scope
// for a Go userland tool.
var hypervisorEntropy = func() ([]byte, error) {
	return nil, errHypervisorNotPresent
}

// hostInterruptSamples stands in for the kernel interrupt-timing
// sampler a real kernel PRNG is refreshed from; this userland tool has
// no such source, so it draws from the platform CSPRNG instead,
// purely to exercise the same Fortuna refresh path the kernel uses.
func hostInterruptSamples(buf []byte) int32 {
	if _, err := rand.Read(buf); err != nil {
		return -1
	}
	return int32(len(buf))
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prng-seedctl",
		Short: "Seed and reseed the kernel PRNG's persisted entropy",
		Long: `prng-seedctl runs the kernel PRNG's boot/shutdown seed-file ritual:
print diagnostics, load the existing seed file, best-effort pull
hypervisor entropy, then store a fresh seed file. All four steps
always run; failures accumulate into the process exit code as a
bitmask (1=load, 2=store, 4=diagnostics, 8=hypervisor).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code := run(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
}

func run(stdout, stderr io.Writer) int {
	ctx, err := kernel.New(kernel.Config{HostEntropy: hostInterruptSamples})
	if err != nil {
		fmt.Fprintf(stderr, "prng-seedctl: kernel init failed: %v\n", err)
		return exitLoadSeedFailed | exitStoreSeedFailed | exitDiagnosticsFailed | exitHypervisorFailed
	}

	hostos := kernel.NewRealHostOS()
	var code int

	if err := printDiagnostics(stdout, ctx); err != nil {
		fmt.Fprintf(stderr, "prng-seedctl: diagnostics failed: %v\n", err)
		code |= exitDiagnosticsFailed
	}

	if err := loadSeed(ctx, hostos); err != nil {
		fmt.Fprintf(stderr, "prng-seedctl: load seed failed: %v\n", err)
		code |= exitLoadSeedFailed
	}

	if err := loadHypervisorEntropy(ctx); err != nil {
		fmt.Fprintf(stderr, "prng-seedctl: hypervisor entropy unavailable: %v\n", err)
		code |= exitHypervisorFailed
	}

	if err := storeSeed(ctx, hostos); err != nil {
		fmt.Fprintf(stderr, "prng-seedctl: store seed failed: %v\n", err)
		code |= exitStoreSeedFailed
	}

	return code
}

func printDiagnostics(w io.Writer, ctx *kernel.Ctx) error {
	d := ctx.Diagnostics()
	_, err := fmt.Fprintf(w,
		"nreseeds=%d schedreseed_nsamples_max=%d addentropy_nsamples_max=%d\n",
		d.NReseeds, d.SchedReseedNSamplesMax, d.AddEntropyNSamplesMax)
	return err
}

func loadSeed(ctx *kernel.Ctx, hostos kernel.HostOS) error {
	seed, err := kernel.LoadSeedFile(hostos, defaultSeedFilePath)
	if err != nil {
		return err
	}
	ctx.AbsorbEntropy(seed)
	return nil
}

func loadHypervisorEntropy(ctx *kernel.Ctx) error {
	raw, err := hypervisorEntropy()
	if err != nil {
		return err
	}
	ctx.AbsorbEntropy(raw)
	return nil
}

func storeSeed(ctx *kernel.Ctx, hostos kernel.HostOS) error {
	seed := make([]byte, kernel.SeedFileNBytes)
	if err := ctx.Generate(len(seed), seed); err != nil {
		return err
	}
	return kernel.StoreSeedFile(hostos, defaultSeedFilePath, seed)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "prng-seedctl: %v\n", err)
		os.Exit(exitDiagnosticsFailed | exitLoadSeedFailed | exitStoreSeedFailed | exitHypervisorFailed)
	}
}
