/*
NAME
  log.go

DESCRIPTION
  log.go declares this package's logger hook, following codec/jpeg's
  package-level Log convention.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codebook

import "github.com/ausocean/utils/logging"

// Log is the package-level logger, assigned by the caller (see
// transcoder's wiring) before StartTranscoding is used.
var Log logging.Logger
