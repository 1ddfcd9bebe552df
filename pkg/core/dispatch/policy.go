// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"strconv"
	"strings"

	"github.com/gomlx/galileo/pkg/core/dtypes"
)

// Policy is a type-use policy: the set of dtypes an operation accepts, for all its operands and result.
type Policy int

const (
	// OnlyFloat accepts Float32, Float64, Float16 and BFloat16.
	OnlyFloat Policy = iota

	// FloatAndSignedInt accepts OnlyFloat plus Int8, Int16, Int32 and Int64.
	FloatAndSignedInt

	// FloatAndInt accepts FloatAndSignedInt plus Uint8, Uint16, Uint32 and Uint64.
	FloatAndInt

	// OnlyComplex accepts Complex64, Complex128 and Complex32.
	OnlyComplex

	// FloatIntAndComplex accepts FloatAndInt plus OnlyComplex.
	FloatIntAndComplex

	numPolicies
)

var (
	floatDTypes    = []dtypes.DType{dtypes.Float32, dtypes.Float64, dtypes.Float16, dtypes.BFloat16}
	signedDTypes   = []dtypes.DType{dtypes.Int8, dtypes.Int16, dtypes.Int32, dtypes.Int64}
	unsignedDTypes = []dtypes.DType{dtypes.Uint8, dtypes.Uint16, dtypes.Uint32, dtypes.Uint64}
	complexDTypes  = []dtypes.DType{dtypes.Complex64, dtypes.Complex128, dtypes.Complex32}
)

// policyTable lists the accepted dtypes per policy.
var policyTable = [numPolicies][]dtypes.DType{
	OnlyFloat:          floatDTypes,
	FloatAndSignedInt:  concat(floatDTypes, signedDTypes),
	FloatAndInt:        concat(floatDTypes, signedDTypes, unsignedDTypes),
	OnlyComplex:        complexDTypes,
	FloatIntAndComplex: concat(floatDTypes, signedDTypes, unsignedDTypes, complexDTypes),
}

// policyAllows[policy][dtype] is a dense version of policyTable.
var policyAllows [numPolicies][dtypes.NumDTypes]bool

func init() {
	for policy, list := range policyTable {
		for _, dtype := range list {
			policyAllows[policy][dtype] = true
		}
	}
}

func concat(lists ...[]dtypes.DType) []dtypes.DType {
	var all []dtypes.DType
	for _, list := range lists {
		all = append(all, list...)
	}
	return all
}

var policyNames = [numPolicies]string{
	OnlyFloat:          "OnlyFloat",
	FloatAndSignedInt:  "FloatAndSignedInt",
	FloatAndInt:        "FloatAndInt",
	OnlyComplex:        "OnlyComplex",
	FloatIntAndComplex: "FloatIntAndComplex",
}

// IsValid returns whether policy is one of the defined policies.
func (policy Policy) IsValid() bool {
	return policy >= 0 && policy < numPolicies
}

// String implements fmt.Stringer.
func (policy Policy) String() string {
	if !policy.IsValid() {
		return "Policy(" + strconv.Itoa(int(policy)) + ")"
	}
	return policyNames[policy]
}

// Allows returns whether dtype is accepted by the policy.
// Invalid dtypes and invalid policies accept nothing.
func (policy Policy) Allows(dtype dtypes.DType) bool {
	if !policy.IsValid() || !dtype.IsValid() {
		return false
	}
	return policyAllows[policy][dtype]
}

// DTypes returns the dtypes accepted by the policy, in enum order.
func (policy Policy) DTypes() []dtypes.DType {
	var list []dtypes.DType
	for _, dtype := range dtypes.All() {
		if policy.Allows(dtype) {
			list = append(list, dtype)
		}
	}
	return list
}

// Describe returns the comma-separated names of the accepted dtypes.
func (policy Policy) Describe() string {
	var parts []string
	for _, dtype := range policy.DTypes() {
		parts = append(parts, dtype.String())
	}
	return strings.Join(parts, ", ")
}

// AllPolicies returns all policies.
func AllPolicies() []Policy {
	all := make([]Policy, numPolicies)
	for ii := range all {
		all[ii] = Policy(ii)
	}
	return all
}
