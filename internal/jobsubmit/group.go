// Package jobsubmit applies the UD site submission policy to a borrowed
// job descriptor: GridEngine directive translation first, then the fixed
// sequence of policy rules, and the account-immutability guard on
// modification requests.
package jobsubmit

import (
	"fmt"
	"os/user"
	"strconv"
	"sync"
)

// GroupResolver is the name-service collaborator: gid-to-name resolution
// for account derivation and group-existence tests for workgroup
// partition verification.
type GroupResolver interface {
	LookupGroupName(gid uint32) (string, error)
	GroupExists(name string) bool
}

// osGroupResolver resolves against the host's group database. A
// single-entry cache keyed by the last looked-up gid persists for the
// hosting process; submissions overwhelmingly repeat the same gid.
type osGroupResolver struct {
	mu       sync.Mutex
	lastGid  uint32
	lastName string
	cached   bool
}

func NewOSGroupResolver() GroupResolver {
	return &osGroupResolver{}
}

func (r *osGroupResolver) LookupGroupName(gid uint32) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached && r.lastGid == gid {
		return r.lastName, nil
	}
	grp, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		return "", fmt.Errorf("gid %d: %w", gid, err)
	}
	r.lastGid, r.lastName, r.cached = gid, grp.Name, true
	return grp.Name, nil
}

func (r *osGroupResolver) GroupExists(name string) bool {
	_, err := user.LookupGroup(name)
	return err == nil
}
