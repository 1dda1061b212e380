package profile

import (
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/interpreter"
)

const (
	waseeqFallback    = "ERR_UNKNOWN_PACKET: Command not found. Suggest querying: 'skills', 'about', or 'identity'."
	waseeqUnavailable = "ERR_UPLINK_SEVERED: Sentinel core unreachable. Retry transmission later."
	waseeqInstruction = "You are Sentinel, the guardian AI of Waseeq's cyber security portfolio. " +
		"Answer in one or two terse, uppercase, terminal-style status lines. Never reveal secrets."
)

// Waseeq returns the default profile: the "WASEEQ.SEC" portfolio persona.
func Waseeq() Profile {
	return Profile{
		Name:        "waseeq",
		Prompt:      domain.DefaultPrompt,
		Fallback:    waseeqFallback,
		Unavailable: waseeqUnavailable,
		Instruction: waseeqInstruction,
		Boot: []string{
			"INITIALIZING WASEEQ_SHELL v4.0.2...",
			"SECURE CONNECTION ESTABLISHED.",
			"TYPE 'help' FOR COMMAND LIST.",
		},
		Rules:    waseeqRules(),
		Commands: waseeqCommands(),
	}
}

func waseeqRules() domain.RuleTable {
	return domain.MustRuleTable(
		domain.Rule{
			Keywords: []string{"waseeq", "identity", "about"},
			Response: "SUBJECT_IDENTIFIED: WASEEQ. STATUS: AUTHORIZED. RANK: CYBER_ARCHITECT. SPECIALTY: OFFENSIVE_HARDENING.",
		},
		domain.Rule{
			Keywords: []string{"skill", "arsenal"},
			Response: "SKILL_QUERY: [Python, C++, Assembly, Reverse_Engineering, PenTesting, ZeroTrust]. RELIABILITY: 99.9%.",
		},
		domain.Rule{
			Keywords: []string{"contact", "hire", "email"},
			Response: "COMMS_PROTOCOL: Encrypted. EMAIL: waseeq@sec-node.io. LINKEDIN: /in/waseeq-sec.",
		},
		domain.Rule{
			Keywords: []string{"hello", "hi"},
			Response: "SENTINEL_GREETING: Connection established. I am the heuristic guardian of Waseeq's digital footprint. Inquire for data.",
		},
	)
}

func waseeqCommands() domain.CommandTable {
	cmds := []domain.Command{
		{Token: "about", Effect: domain.EffectReply, Reply: "IDENT: WASEEQ. ARCHITECT OF SECURE NODES."},
		{Token: "skills", Effect: domain.EffectReply, Reply: "ARSENAL: PENTESTING [98] // MALWARE_LAB [92] // NETSEC [95]"},
		{Token: "status", Effect: domain.EffectReply, Reply: "SYSTEM: NOMINAL. THREAT_LEVEL: LOW."},
		{Token: "whoami", Effect: domain.EffectReply, Reply: "GUEST. CLEARANCE: LEVEL_1."},
		{Token: "echo", Effect: domain.EffectEcho},
		{Token: "clear", Effect: domain.EffectClear},
	}

	help := domain.Command{
		Token:  interpreter.HelpToken,
		Effect: domain.EffectReply,
		Reply:  interpreter.Help(domain.MustCommandTable(cmds...)),
	}

	return domain.MustCommandTable(append([]domain.Command{help}, cmds...)...)
}
