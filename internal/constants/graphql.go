package constants

// StagedUploadsCreateMutation requests one-time upload targets.
const StagedUploadsCreateMutation = `mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets {
      url
      resourceUrl
      parameters {
        name
        value
      }
    }
    userErrors {
      field
      message
    }
  }
}`

// FileCreateMutation registers an uploaded object as a file.
const FileCreateMutation = `mutation fileCreate($files: [FileCreateInput!]!) {
  fileCreate(files: $files) {
    files {
      id
      alt
      fileStatus
      createdAt
    }
    userErrors {
      field
      message
    }
  }
}`

// FileNodeQuery reads a file's processing status and final URL.
const FileNodeQuery = `query fileNode($id: ID!) {
  node(id: $id) {
    id
    ... on GenericFile {
      fileStatus
      url
      fileErrors {
        code
        details
        message
      }
    }
    ... on MediaImage {
      fileStatus
      image {
        url
      }
      fileErrors {
        code
        details
        message
      }
    }
    ... on Video {
      fileStatus
      originalSource {
        url
      }
      fileErrors {
        code
        details
        message
      }
    }
  }
}`
