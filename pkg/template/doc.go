// Package template renders daemon config files from text/template sources.
//
// Templates are embedded under templates/ and addressed without the .tmpl
// suffix, e.g. "services/iscsi/iscsi-gateway.cfg". A file with the same
// relative path in the override directory takes precedence. Missing context
// keys are errors.
package template
