// Package hcldecl reads custom object and rule declarations from HCL files.
//
// A file may contain any number of blocks:
//
//	custom_object "SampleObject" {
//	  attribute "stringValue" {
//	    type  = string
//	    value = "single"
//	  }
//	  attribute "dateMap" {
//	    type    = map(date)
//	    entries = { "now" = "now" }
//	  }
//	}
//
//	rule "Set Manager" {
//	  class       = "github.com/acme/rules.SetManager"
//	  kind        = "Workflow"
//	  description = "Assigns a manager."
//	  argument "identity" {
//	    type     = "Identity"
//	    required = true
//	    prompt   = "Identity to update"
//	  }
//	  argument "result" {
//	    type   = string
//	    return = true
//	  }
//	}
//
// Blocks become declare.Declarations and go through the same extractor as
// declarations read from Go struct tags.
package hcldecl
