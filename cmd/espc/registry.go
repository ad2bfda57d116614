package main

import (
	"time"

	"github.com/espsec/espc/internal/collect"
	"github.com/espsec/espc/internal/contract"
	"github.com/espsec/espc/internal/ctn/filecontent"
	"github.com/espsec/espc/internal/ctn/filemetadata"
	"github.com/espsec/espc/internal/ctn/jsonrecord"
	"github.com/espsec/espc/internal/ctn/rpmpackage"
	"github.com/espsec/espc/internal/ctn/selinuxstatus"
	"github.com/espsec/espc/internal/ctn/sysctlparameter"
	"github.com/espsec/espc/internal/ctn/systemdservice"
	"github.com/espsec/espc/internal/exec"
)

// buildContracts registers every built-in CTN's contract, fixed at
// build time (§4.8 "ESP's contract set is fixed at build time, not
// discovered from .so plugins at runtime").
func buildContracts() (*contract.Registry, error) {
	reg := contract.NewRegistry()
	for _, c := range []contract.Contract{
		filemetadata.Contract(),
		filecontent.Contract(),
		jsonrecord.Contract(),
		rpmpackage.Contract(),
		selinuxstatus.Contract(),
		sysctlparameter.Contract(),
		systemdservice.Contract(),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// buildCollectors wires the execution engine's Registry to the same
// built-in CTN set. timeout overrides collect.DefaultCommandTimeout on
// every command-backed collector (rpmpackage, selinuxstatus,
// sysctlparameter, systemdservice); a zero timeout leaves each
// collector's own default in place. filemetadata/filecontent/jsonrecord
// probe the filesystem directly and carry no Timeout field.
//
// Every command-backed collector runs through collect.RHEL9Executor, so
// rpm/getenforce/sysctl/systemctl are the only binaries espc will ever
// invoke on the host's behalf (§5's subprocess-isolation properties plus
// a fixed whitelist, rather than trusting each collector's hardcoded
// literal alone).
func buildCollectors(timeout time.Duration) exec.Registry {
	executor := collect.RHEL9Executor(timeout)
	return exec.Registry{
		filemetadata.Kind:    filemetadata.Collector{},
		filecontent.Kind:     filecontent.Collector{},
		jsonrecord.Kind:      jsonrecord.Collector{},
		rpmpackage.Kind:      rpmpackage.Collector{Timeout: timeout, Executor: executor},
		selinuxstatus.Kind:   selinuxstatus.Collector{Timeout: timeout, Executor: executor},
		sysctlparameter.Kind: sysctlparameter.Collector{Timeout: timeout, Executor: executor},
		systemdservice.Kind:  systemdservice.Collector{Timeout: timeout, Executor: executor},
	}
}
