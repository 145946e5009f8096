// Package cognito adapts an AWS Cognito user pool to the session.Provider
// seam. The adapter is stateless: one SDK round trip per call, no retries,
// and every Cognito error code normalized into the session.ErrorKind
// taxonomy before it leaves this package.
package cognito
