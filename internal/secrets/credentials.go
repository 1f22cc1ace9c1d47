// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package secrets

// Credential names understood by the agent and the extension server.
const (
	PrimaryKey    = "ANTHROPIC_API_KEY"
	GeminiKey     = "GEMINI_API_KEY"
	OpenAIKey     = "OPENAI_API_KEY"
	OpenRouterKey = "OPENROUTER_API_KEY"
)

// AlternateNames lists the alternate provider credentials in the order they
// are reported and rendered.
var AlternateNames = []string{GeminiKey, OpenAIKey, OpenRouterKey}

// KnownNames returns every credential name the launcher resolves, primary first.
func KnownNames() []string {
	return append([]string{PrimaryKey}, AlternateNames...)
}

// IsKnown reports whether name is one of the known credential names.
func IsKnown(name string) bool {
	for _, known := range KnownNames() {
		if known == name {
			return true
		}
	}
	return false
}

// Credential is one resolved provider key.
type Credential struct {
	Name   string
	Value  string
	Source string
}

// Present reports whether the credential has a non-empty value.
func (c Credential) Present() bool {
	return c.Value != ""
}

// CredentialSet holds the resolved credentials. It is built once by
// Resolver.Resolve and never mutated afterwards.
type CredentialSet struct {
	primary    Credential
	alternates []Credential
}

// NewCredentialSet builds a set from literal values. Empty values count as
// absent. Intended for callers that already hold the values.
func NewCredentialSet(values map[string]string) CredentialSet {
	set := CredentialSet{primary: Credential{Name: PrimaryKey, Value: values[PrimaryKey], Source: "literal"}}
	for _, name := range AlternateNames {
		set.alternates = append(set.alternates, Credential{Name: name, Value: values[name], Source: "literal"})
	}
	return set
}

// Primary returns the primary credential. Check Present before use.
func (s CredentialSet) Primary() Credential {
	return s.primary
}

// HasPrimary reports whether the primary credential is set.
func (s CredentialSet) HasPrimary() bool {
	return s.primary.Present()
}

// Alternates returns the alternate credentials that are set, in
// AlternateNames order.
func (s CredentialSet) Alternates() []Credential {
	var set []Credential
	for _, c := range s.alternates {
		if c.Present() {
			set = append(set, c)
		}
	}
	return set
}

// HasAlternate reports whether at least one alternate credential is set.
func (s CredentialSet) HasAlternate() bool {
	return len(s.Alternates()) > 0
}

// All returns every known credential, set or not, primary first.
func (s CredentialSet) All() []Credential {
	all := make([]Credential, 0, 1+len(s.alternates))
	all = append(all, s.primary)
	return append(all, s.alternates...)
}

// Get returns the credential with the given name.
func (s CredentialSet) Get(name string) (Credential, bool) {
	for _, c := range s.All() {
		if c.Name == name {
			return c, c.Present()
		}
	}
	return Credential{Name: name}, false
}
