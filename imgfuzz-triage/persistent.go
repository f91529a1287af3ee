// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// PersistentSet is a directory of artifacts named by content hash.
type PersistentSet struct {
	dir string
	m   map[Sig][]byte
}

type Sig [32]byte

func hash(data []byte) Sig {
	return Sig(blake3.Sum256(data))
}

func (s Sig) String() string {
	return hex.EncodeToString(s[:])
}

// sigLen is the length of an artifact file name.
const sigLen = 2 * len(Sig{})

func newPersistentSet(dir string) (*PersistentSet, error) {
	ps := &PersistentSet{
		dir: dir,
		m:   make(map[Sig][]byte),
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, err
	}
	ps.readInDir(dir)
	return ps, nil
}

func (ps *PersistentSet) readInDir(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("error during dir walk: %v\n", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if len(name) > sigLen && name[sigLen] == '.' {
			return nil // description file
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("error during file read: %v\n", err)
			return nil
		}
		ps.m[hash(data)] = data
		return nil
	})
}

// add stores data and reports whether it was new.
func (ps *PersistentSet) add(data []byte) bool {
	sig := hash(data)
	if _, ok := ps.m[sig]; ok {
		return false
	}
	ps.m[sig] = data
	if err := os.WriteFile(filepath.Join(ps.dir, sig.String()), data, 0o660); err != nil {
		log.Printf("failed to write file: %v", err)
	}
	return true
}

func (ps *PersistentSet) addDescription(data []byte, desc []byte, typ string) {
	fname := filepath.Join(ps.dir, fmt.Sprintf("%v.%v", hash(data), typ))
	if err := os.WriteFile(fname, desc, 0o660); err != nil {
		log.Printf("failed to write file: %v", err)
	}
}

func (ps *PersistentSet) len() int {
	return len(ps.m)
}
