package schema

// pipelineSchemaYAML is the schema every pipeline document must satisfy
// before it is decoded. Reference and cycle checks on `needs` happen later,
// in the graph package; this layer only rejects structurally malformed
// documents.
const pipelineSchemaYAML = `
$schema: "https://json-schema.org/draft/2020-12/schema"
type: object
required: [apiVersion, kind, jobs]
properties:
  apiVersion:
    type: string
  kind:
    type: string
    const: Pipeline
  metadata:
    type: object
    properties:
      name:
        type: string
      description:
        type: string
  jobs:
    type: array
    minItems: 1
    items:
      type: object
      required: [name, steps]
      properties:
        name:
          type: string
          minLength: 1
        image:
          type: string
        timeout:
          type: string
        needs:
          type: array
          items:
            type: string
        setup:
          $ref: "#/$defs/steps"
        steps:
          allOf:
            - $ref: "#/$defs/steps"
            - minItems: 1
      additionalProperties: false
$defs:
  steps:
    type: array
    items:
      type: object
      required: [name, run]
      properties:
        name:
          type: string
          minLength: 1
        run:
          type: string
          minLength: 1
      additionalProperties: false
`
