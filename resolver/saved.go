package resolver

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/oterra/oterra/types"
)

// The renderer writes configuration as terraform locals: scalar counts
// plus parallel arrays indexed by instance position. Parsing pulls the
// fields the resolver owns back out and ignores the rest of the file.
var (
	amdCountRe     = regexp.MustCompile(`amd_micro_instance_count\s*=\s*(\d+)`)
	armCountRe     = regexp.MustCompile(`arm_flex_instance_count\s*=\s*(\d+)`)
	amdHostnamesRe = regexp.MustCompile(`amd_micro_hostnames\s*=\s*\[([^\]]*)\]`)
	armHostnamesRe = regexp.MustCompile(`arm_flex_hostnames\s*=\s*\[([^\]]*)\]`)
	armOCPUsRe     = regexp.MustCompile(`arm_flex_ocpus_per_instance\s*=\s*\[([^\]]*)\]`)
	armMemoryRe    = regexp.MustCompile(`arm_flex_memory_per_instance\s*=\s*\[([^\]]*)\]`)
	armBootRe      = regexp.MustCompile(`arm_flex_boot_volume_size_gb\s*=\s*\[([^\]]*)\]`)
	armBlockRe     = regexp.MustCompile(`arm_block_volume_sizes\s*=\s*\[([^\]]*)\]`)
	amdBootRe      = regexp.MustCompile(`amd_micro_boot_volume_size_gb\s*=\s*(\d+)`)
)

// resolveSaved loads the desired state persisted by a previous run.
// A missing or malformed file is a configuration error; there is no
// fallback, the caller chose this strategy explicitly.
func (r *Resolver) resolveSaved() (*types.DesiredState, error) {
	path := r.opts.SavedPath
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("saved configuration %s not readable: %v", path, err)}
	}
	content := string(data)

	amdCount, err := parseCount(content, amdCountRe, "amd_micro_instance_count")
	if err != nil {
		return nil, err
	}
	armCount, err := parseCount(content, armCountRe, "arm_flex_instance_count")
	if err != nil {
		return nil, err
	}

	amdBoot := DefaultAmdBootGB
	if m := amdBootRe.FindStringSubmatch(content); len(m) > 1 {
		amdBoot, _ = strconv.Atoi(m[1])
	}

	amdHostnames := parseStringList(content, amdHostnamesRe)
	armHostnames := parseStringList(content, armHostnamesRe)
	armOCPUs := parseIntList(content, armOCPUsRe)
	armMemory := parseIntList(content, armMemoryRe)
	armBoot := parseIntList(content, armBootRe)
	armBlock := parseIntList(content, armBlockRe)

	desired := &types.DesiredState{Vcn: defaultVcn()}

	for i := 0; i < amdCount; i++ {
		spec := types.InstanceSpec{
			Hostname:     fmt.Sprintf("amd-instance-%d", i+1),
			BootVolumeGB: amdBoot,
		}
		if i < len(amdHostnames) {
			spec.Hostname = amdHostnames[i]
		}
		desired.Amd = append(desired.Amd, spec)
	}

	for i := 0; i < armCount; i++ {
		spec := types.InstanceSpec{BootVolumeGB: DefaultAmdBootGB}
		if i < len(armHostnames) {
			spec.Hostname = armHostnames[i]
		} else {
			spec.Hostname = fmt.Sprintf("arm-instance-%d", i+1)
		}
		if i >= len(armOCPUs) || i >= len(armMemory) {
			return nil, &ConfigError{Reason: fmt.Sprintf(
				"saved configuration %s is malformed: %d arm instances declared but only %d ocpu / %d memory entries",
				path, armCount, len(armOCPUs), len(armMemory))}
		}
		spec.OCPUs = armOCPUs[i]
		spec.MemoryGB = armMemory[i]
		if i < len(armBoot) {
			spec.BootVolumeGB = armBoot[i]
		}
		if i < len(armBlock) {
			spec.BlockVolumeGB = armBlock[i]
		}
		desired.Arm = append(desired.Arm, spec)
	}

	log.Info().
		Str("path", path).
		Int("amd", amdCount).
		Int("arm", armCount).
		Msg("loaded saved configuration")
	return desired, nil
}

func parseCount(content string, re *regexp.Regexp, field string) (int, error) {
	m := re.FindStringSubmatch(content)
	if len(m) < 2 {
		return 0, &ConfigError{Reason: fmt.Sprintf("saved configuration is missing %s", field)}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &ConfigError{Reason: fmt.Sprintf("saved configuration has invalid %s: %v", field, err)}
	}
	return n, nil
}

func parseStringList(content string, re *regexp.Regexp) []string {
	m := re.FindStringSubmatch(content)
	if len(m) < 2 || strings.TrimSpace(m[1]) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(m[1], ",") {
		v := strings.Trim(strings.TrimSpace(part), `"`)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseIntList(content string, re *regexp.Regexp) []int {
	m := re.FindStringSubmatch(content)
	if len(m) < 2 || strings.TrimSpace(m[1]) == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(m[1], ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
