package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedTokenKey marks a logged-out JWT by its JTI.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

// UniversitiesKey caches the full university list.
func (r *CacheKeyStruct) UniversitiesKey() string {
	return "catalog:universities"
}

// ProgramsKey caches the program list of one university, or all programs when universityID is empty.
func (r *CacheKeyStruct) ProgramsKey(universityID string) string {
	if universityID == "" {
		return "catalog:programs:all"
	}
	return fmt.Sprintf("catalog:programs:%s", universityID)
}

// CatalogPattern matches every catalog cache entry.
func (r *CacheKeyStruct) CatalogPattern() string {
	return "catalog:*"
}

// GenerationLockKey guards a single running essay generation per application.
func (r *CacheKeyStruct) GenerationLockKey(applicationID string) string {
	return fmt.Sprintf("application:%s:generating", applicationID)
}

// GenerationChannel is the Redis PubSub channel carrying generation progress.
func (r *CacheKeyStruct) GenerationChannel(applicationID string) string {
	return fmt.Sprintf("application:%s:progress", applicationID)
}

var CacheKey = NewCacheKeyStruct()
