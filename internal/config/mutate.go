package config

import "strings"

// The helpers in this file implement the host's configuration edits for the
// feishu section. Each one clones the tree and returns the modified copy;
// the input is never touched.

func ensureSection(t *Tree) *Section {
	if t.Channels.Feishu == nil {
		t.Channels.Feishu = &Section{}
	}
	return t.Channels.Feishu
}

func (s *Section) ensureAccount(accountID string) *Account {
	if s.Accounts == nil {
		s.Accounts = make(map[string]*Account)
	}
	acct, ok := s.Accounts[accountID]
	if !ok || acct == nil {
		acct = &Account{}
		s.Accounts[accountID] = acct
		s.accountOrder = append(s.accountOrder, accountID)
	}
	return acct
}

func (s *Section) dropAccount(accountID string) {
	delete(s.Accounts, accountID)
	for i, id := range s.accountOrder {
		if id == accountID {
			s.accountOrder = append(s.accountOrder[:i], s.accountOrder[i+1:]...)
			break
		}
	}
}

// SetAccountEnabled toggles one account. The default account's flag lives on
// the section itself; named accounts get an entry created on demand.
func SetAccountEnabled(tree *Tree, accountID string, enabled bool) *Tree {
	next := tree.Clone()
	section := ensureSection(next)
	id := NormalizeAccountID(accountID)
	flag := enabled
	if id == DefaultAccountID {
		section.Enabled = &flag
		return next
	}
	section.ensureAccount(id).Enabled = &flag
	return next
}

// DeleteAccount removes a named account entry. Deleting the default account
// clears its credentials and display name from the section instead, leaving
// the rest of the section intact.
func DeleteAccount(tree *Tree, accountID string) *Tree {
	next := tree.Clone()
	section := ensureSection(next)
	id := NormalizeAccountID(accountID)
	if id == DefaultAccountID {
		section.AppID = ""
		section.AppSecret = ""
		section.Name = ""
		return next
	}
	section.dropAccount(id)
	return next
}

// ApplyAccountName records a display name for one account. Empty names are
// ignored. The default account's name is stored on the section.
func ApplyAccountName(tree *Tree, accountID, name string) *Tree {
	next := tree.Clone()
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return next
	}
	section := ensureSection(next)
	id := NormalizeAccountID(accountID)
	if id == DefaultAccountID {
		section.Name = trimmed
		return next
	}
	section.ensureAccount(id).Name = trimmed
	return next
}

// MigrateBaseNameToDefaultAccount moves a section-level display name into an
// explicit default account entry. Named accounts do not inherit the display
// name, so the move keeps it bound to the default account once other
// accounts exist. Running it twice is a no-op.
func MigrateBaseNameToDefaultAccount(tree *Tree) *Tree {
	next := tree.Clone()
	section := next.Channels.Feishu
	if section == nil {
		return next
	}
	base := strings.TrimSpace(section.Name)
	if base == "" {
		return next
	}
	acct := section.ensureAccount(DefaultAccountID)
	if strings.TrimSpace(acct.Name) == "" {
		acct.Name = base
	}
	section.Name = ""
	return next
}

// SetupInput carries the answers collected by the host's channel setup flow.
type SetupInput struct {
	Name              string `json:"name,omitempty"`
	AppID             string `json:"appId,omitempty" validate:"omitempty,printascii"`
	AppSecret         string `json:"appSecret,omitempty"`
	EncryptKey        string `json:"encryptKey,omitempty"`
	VerificationToken string `json:"verificationToken,omitempty"`
	EventURL          string `json:"eventUrl,omitempty" validate:"omitempty,url"`
	UseEnv            bool   `json:"useEnv,omitempty"`
}

// ValidateSetupInput checks a setup request before it is applied. It returns
// a human-readable problem description, or empty when the input is valid.
func ValidateSetupInput(accountID string, input SetupInput) string {
	id := NormalizeAccountID(accountID)
	if input.UseEnv && id != DefaultAccountID {
		return "Feishu env credentials can only be used for the default account."
	}
	if !input.UseEnv && (strings.TrimSpace(input.AppID) == "" || strings.TrimSpace(input.AppSecret) == "") {
		return "Feishu requires --app-id and --app-secret (or --use-env)."
	}
	return ""
}

// ApplyAccountConfig writes a validated setup request into the tree. The
// account is enabled, credentials are stored where present, and setting up a
// named account first migrates any section-level display name so the new
// account does not appear to own it.
func ApplyAccountConfig(tree *Tree, accountID string, input SetupInput) *Tree {
	id := NormalizeAccountID(accountID)
	next := ApplyAccountName(tree, id, input.Name)
	if id != DefaultAccountID {
		next = MigrateBaseNameToDefaultAccount(next)
	}
	section := ensureSection(next)

	var fields *AccountFields
	if id == DefaultAccountID {
		fields = &section.AccountFields
	} else {
		fields = &section.ensureAccount(id).AccountFields
		enabled := true
		section.Enabled = &enabled
	}
	enabled := true
	fields.Enabled = &enabled

	if id == DefaultAccountID && input.UseEnv {
		return next
	}
	applyIfSet(&fields.AppID, input.AppID)
	applyIfSet(&fields.AppSecret, input.AppSecret)
	applyIfSet(&fields.EncryptKey, input.EncryptKey)
	applyIfSet(&fields.VerificationToken, input.VerificationToken)
	applyIfSet(&fields.EventURL, input.EventURL)
	return next
}

func applyIfSet(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}
