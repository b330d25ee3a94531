// Package doctor inspects the installation for the failure modes the store
// permits by design: broken installs, dangling aliases, a ledger pointing
// nowhere.
package doctor

import (
	"os"

	"phpvm/internal/alias"
	"phpvm/internal/config"
	"phpvm/internal/ledger"
	"phpvm/internal/store"
)

type Finding struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Report struct {
	Healthy  bool      `json:"healthy"`
	Findings []Finding `json:"findings"`
}

type Service struct {
	ConfigPath string
	Root       string
}

func (s *Service) Run() Report {
	findings := []Finding{}

	if _, err := os.Stat(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_MISSING", Level: "error", Message: err.Error()})
	} else if _, err := config.Load(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_INVALID", Level: "error", Message: err.Error()})
	}

	records, err := store.List(s.Root)
	if err != nil {
		findings = append(findings, Finding{Code: "DOC_STORE_UNREADABLE", Level: "error", Message: err.Error()})
	}
	installed := map[string]struct{}{}
	for _, rec := range records {
		installed[rec.Version] = struct{}{}
		if rec.Broken {
			findings = append(findings, Finding{Code: "DOC_STORE_BROKEN", Level: "warn", Message: rec.Version + " has no " + rec.BinaryPath})
			continue
		}
		if _, found, err := store.LoadManifest(s.Root, rec.Version); err != nil {
			findings = append(findings, Finding{Code: "DOC_MANIFEST_INVALID", Level: "warn", Message: rec.Version + ": " + err.Error()})
		} else if !found {
			findings = append(findings, Finding{Code: "DOC_MANIFEST_MISSING", Level: "info", Message: rec.Version + " was installed without a manifest (external tooling?)"})
		}
	}

	aliases, err := alias.List(s.Root)
	if err != nil {
		findings = append(findings, Finding{Code: "DOC_ALIAS_UNREADABLE", Level: "error", Message: err.Error()})
	}
	for _, a := range aliases {
		if _, ok := installed[a.Target]; !ok {
			findings = append(findings, Finding{Code: "DOC_ALIAS_DANGLING", Level: "warn", Message: a.Name + " -> " + a.Target + " is not installed"})
		}
	}

	if active, err := ledger.Get(s.Root); err != nil {
		findings = append(findings, Finding{Code: "DOC_LEDGER_UNREADABLE", Level: "error", Message: err.Error()})
	} else if active != "" {
		if _, ok := installed[active]; !ok {
			findings = append(findings, Finding{Code: "DOC_LEDGER_DANGLING", Level: "warn", Message: "active version " + active + " is not installed"})
		}
	}

	healthy := true
	for _, f := range findings {
		if f.Level == "error" {
			healthy = false
			break
		}
	}
	return Report{Healthy: healthy, Findings: findings}
}
