package session

import (
	"bufio"
	"strings"

	"github.com/spf13/afero"
	"github.com/svera/barrio/internal/webserver/model"
)

// Policy decides which identities are escalated to super admin, skipping tenant resolution
type Policy interface {
	Escalates(email string) bool
}

// AllowList is a Policy granting super admin to a fixed set of emails
type AllowList struct {
	emails map[string]struct{}
}

func NewAllowList(emails ...string) AllowList {
	list := AllowList{emails: map[string]struct{}{}}
	for _, email := range emails {
		if email = model.NormalizeEmail(email); email != "" {
			list.emails[email] = struct{}{}
		}
	}
	return list
}

// LoadAllowList builds an allow list from emails plus the ones listed in the file at path,
// one per line. Blank lines and lines starting with # are ignored. An empty path reads no file.
func LoadAllowList(fs afero.Fs, path string, emails ...string) (AllowList, error) {
	if path == "" {
		return NewAllowList(emails...), nil
	}

	file, err := fs.Open(path)
	if err != nil {
		return AllowList{}, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		emails = append(emails, line)
	}
	if err := scanner.Err(); err != nil {
		return AllowList{}, err
	}
	return NewAllowList(emails...), nil
}

func (a AllowList) Escalates(email string) bool {
	_, ok := a.emails[model.NormalizeEmail(email)]
	return ok
}

func (a AllowList) Len() int {
	return len(a.emails)
}
