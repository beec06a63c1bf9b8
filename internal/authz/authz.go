// Package authz holds the pure authorization rules for patient-owned
// resources. Decisions are computed from the requesting patient's identity,
// the staff flag, and the target resource's owner; the package performs no
// I/O.
package authz

import "fmt"

// Decision is the outcome of an authorization check. Reason is only set when
// the check is denied.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Owns reports whether the requesting patient owns a resource.
func Owns(requesterID, ownerID uint) bool {
	return requesterID != 0 && requesterID == ownerID
}

// CanListPatientScoped decides whether the requester may list a patient-scoped
// collection. Listing without a patient filter is staff-only; listing a
// specific patient's records is allowed for staff or that patient.
// resource is the plural collection name used in the denial message.
func CanListPatientScoped(requesterID uint, isStaff bool, filterPatientID *uint, resource string) Decision {
	if isStaff {
		return allow()
	}
	if filterPatientID == nil {
		return deny(fmt.Sprintf("only staff can access a list of %s not specified by patient id", resource))
	}
	if *filterPatientID != requesterID {
		return deny("only staff or the patient with this id can access this list")
	}
	return allow()
}

// CanMutate decides whether the requester may update or delete a resource
// owned by ownerID. resource is the singular entity name used in the denial
// message.
func CanMutate(requesterID, ownerID uint, resource string) Decision {
	if Owns(requesterID, ownerID) {
		return allow()
	}
	return deny(fmt.Sprintf("only the patient who owns this %s can modify it", resource))
}
