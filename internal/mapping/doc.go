// Package mapping provides the YAML schema, parsing and validation of mapping
// declaration files.
//
// A declaration file pins explicit property mappings that the implicit matcher would
// not find, or would find ambiguously, and can carry configuration settings.
//
// # Schema Overview
//
//	version: "1"
//	settings:
//	  matching:
//	    strategy: strict
//	  skip_null: true
//	mappings:
//	  - source: store.Order
//	    destination: api.Order
//	    # Simplified 1:1 mappings
//	    121:
//	      OrderID: ID
//	      Customer.Name: CustomerName
//	    # Full field mappings
//	    fields:
//	      - Status                       # same member on both sides
//	      - source: Total
//	        destination: Amount
//	        converter: cents
//	        condition: source != nil && source > 0
//	    # Destination members never written
//	    skip:
//	      - InternalNotes
//
// # Path Syntax
//
// Member paths support:
//   - Simple members: "Name"
//   - Nested members: "Address.Street"
//   - Getter methods: "GetName()"
//
// Type and converter names are resolved by the caller through a Lookup; the file
// itself never refers to Go import paths.
package mapping
