package domain

import (
	"fmt"

	"scentify/internal/core/errs"
)

// PerfumeType 浓度类型
type PerfumeType string

const (
	TypeParfum        PerfumeType = "parfum"
	TypeEauDeParfum   PerfumeType = "eau_de_parfum"
	TypeEauDeToilette PerfumeType = "eau_de_toilette"
	TypeEauDeCologne  PerfumeType = "eau_de_cologne"
	TypeEauFraiche    PerfumeType = "eau_fraiche"
)

func (t PerfumeType) Valid() bool {
	switch t {
	case TypeParfum, TypeEauDeParfum, TypeEauDeToilette, TypeEauDeCologne, TypeEauFraiche:
		return true
	}
	return false
}

func (t *PerfumeType) UnmarshalText(b []byte) error {
	v := PerfumeType(b)
	if !v.Valid() {
		return errs.BadRequest(fmt.Sprintf("invalid perfume type %q", string(b)))
	}
	*t = v
	return nil
}

// ScentFamily 香调
type ScentFamily string

const (
	FamilyFloral   ScentFamily = "floral"
	FamilyWoody    ScentFamily = "woody"
	FamilyOriental ScentFamily = "oriental"
	FamilyFresh    ScentFamily = "fresh"
	FamilyGourmand ScentFamily = "gourmand"
	FamilyChypre   ScentFamily = "chypre"
	FamilyFougere  ScentFamily = "fougere"
)

func (f ScentFamily) Valid() bool {
	switch f {
	case FamilyFloral, FamilyWoody, FamilyOriental, FamilyFresh, FamilyGourmand, FamilyChypre, FamilyFougere:
		return true
	}
	return false
}

func (f *ScentFamily) UnmarshalText(b []byte) error {
	v := ScentFamily(b)
	if !v.Valid() {
		return errs.BadRequest(fmt.Sprintf("invalid scent family %q", string(b)))
	}
	*f = v
	return nil
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnisex:
		return true
	}
	return false
}

func (g *Gender) UnmarshalText(b []byte) error {
	v := Gender(b)
	if !v.Valid() {
		return errs.BadRequest(fmt.Sprintf("invalid gender %q", string(b)))
	}
	*g = v
	return nil
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func (r *Role) UnmarshalText(b []byte) error {
	v := Role(b)
	if !v.Valid() {
		return errs.BadRequest(fmt.Sprintf("invalid role %q", string(b)))
	}
	*r = v
	return nil
}
