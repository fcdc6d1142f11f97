package config

import "strings"

// ResolvedAccount is the fully materialized view of one account after
// channel-level fallback has been applied.
type ResolvedAccount struct {
	AccountID         string
	Enabled           bool
	Name              string
	AppID             string
	AppSecret         string
	EncryptKey        string
	VerificationToken string
	EventURL          string
	Extra             map[string]any
}

// ConnectsViaWebhook reports whether the account delivers events over an
// HTTP webhook instead of the long-lived websocket.
func (r ResolvedAccount) ConnectsViaWebhook() bool {
	return strings.TrimSpace(r.EventURL) != ""
}

// HasCredentials reports whether both app credentials are present.
func (r ResolvedAccount) HasCredentials() bool {
	return r.AppID != "" && r.AppSecret != ""
}

// NormalizeAccountID maps an empty or whitespace id to the default account.
func NormalizeAccountID(accountID string) string {
	id := strings.TrimSpace(accountID)
	if id == "" {
		return DefaultAccountID
	}
	return id
}

// ListAccountIDs returns every configured account id for the section. A
// section without an accounts map still exposes the default account.
func ListAccountIDs(section *Section) []string {
	ids := section.AccountIDs()
	if len(ids) == 0 {
		return []string{DefaultAccountID}
	}
	return ids
}

// ResolveAccount materializes one account from the section. The default
// account reads the section's own fields; named accounts fall back to the
// section for credentials and delivery settings, but never for the display
// name or the extra config bag. Unknown ids resolve to an empty, disabled
// account rather than an error.
func ResolveAccount(section *Section, accountID string) ResolvedAccount {
	id := NormalizeAccountID(accountID)
	resolved := ResolvedAccount{AccountID: id}
	if section == nil {
		return resolved
	}

	base := section.AccountFields
	if id == DefaultAccountID {
		resolved.Enabled = base.Enabled != nil && *base.Enabled
		resolved.Name = strings.TrimSpace(base.Name)
		resolved.AppID = strings.TrimSpace(base.AppID)
		resolved.AppSecret = strings.TrimSpace(base.AppSecret)
		resolved.EncryptKey = strings.TrimSpace(base.EncryptKey)
		resolved.VerificationToken = strings.TrimSpace(base.VerificationToken)
		resolved.EventURL = strings.TrimSpace(base.EventURL)
		resolved.Extra = cloneAnyMap(base.Extra)
		return resolved
	}

	var acct AccountFields
	if entry, ok := section.Accounts[id]; ok && entry != nil {
		acct = entry.AccountFields
	}

	resolved.Enabled = firstBool(acct.Enabled, base.Enabled)
	resolved.Name = strings.TrimSpace(acct.Name)
	resolved.AppID = fallback(acct.AppID, base.AppID)
	resolved.AppSecret = fallback(acct.AppSecret, base.AppSecret)
	resolved.EncryptKey = fallback(acct.EncryptKey, base.EncryptKey)
	resolved.VerificationToken = fallback(acct.VerificationToken, base.VerificationToken)
	resolved.EventURL = fallback(acct.EventURL, base.EventURL)
	resolved.Extra = cloneAnyMap(acct.Extra)
	return resolved
}

// ResolveEnabledAccounts returns every account that resolves as enabled, in
// listing order.
func ResolveEnabledAccounts(section *Section) []ResolvedAccount {
	var out []ResolvedAccount
	for _, id := range ListAccountIDs(section) {
		resolved := ResolveAccount(section, id)
		if resolved.Enabled {
			out = append(out, resolved)
		}
	}
	return out
}

func fallback(value, base string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return strings.TrimSpace(base)
}

func firstBool(values ...*bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return false
}
