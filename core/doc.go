// Package core contains the session domain: the session state machine and
// its manager, the authorized-request gateway, credential store contracts,
// and configuration. Transport and storage adapters depend on this package;
// core must not depend on them.
package core
