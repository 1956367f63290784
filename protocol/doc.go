package protocol

// This package implements parsing and serialising of the messages the
// auction client and server exchange.
//
// The protocol aims to be
//
// - easy to implement
// - strict: anything outside the grammar is rejected before it is used
// - human readable
//
// - `Request`  - a client instruction to the server (LIN, OPA, BID, ...)
// - `Response` - the server's answer, one response code per request code
// - `ERR`      - a generic protocol error, valid in either direction
//
// === General Syntax
//
// - messages are ASCII and terminated by a single `\n`
// - every message starts with a 3 character upper case type code
// - fields are separated by exactly one space
// - every field has a fixed or bounded length and a character class
//
//   ```
//     <CODE> <field> <field> ...\n
//   ```
//
// === Datagram exchanges (UDP)
//
//  ```
//    > LIN <UID> <password>\n          < RLI <OK|NOK|REG|ERR>\n
//    > LOU <UID> <password>\n          < RLO <OK|NOK|UNR|ERR>\n
//    > UNR <UID> <password>\n          < RUR <OK|NOK|UNR|ERR>\n
//    > LMA <UID>\n                     < RMA <status>[ <AID> <state>]*\n
//    > LMB <UID>\n                     < RMB <status>[ <AID> <state>]*\n
//    > LST\n                           < RLS <status>[ <AID> <state>]*\n
//    > SRC <AID>\n                     < RRC <status>[ <record>]\n
//  ```
//
// A record is
//
//  ```
//    <host UID> <name> <asset fname> <start value> <YYYY-MM-DD HH:MM:SS> <time active>
//    [ B <bidder UID> <value> <YYYY-MM-DD HH:MM:SS> <seconds since start>]*
//    [ E <YYYY-MM-DD HH:MM:SS> <seconds since start>]
//  ```
//
// all on one line.
//
// === Stream exchanges (TCP)
//
//  ```
//    > OPA <UID> <password> <name> <start value> <time active> <Fname> <Fsize> <Fdata>\n
//    < ROA <OK|NOK|NLG|ERR>[ <AID>]\n
//
//    > CLS <UID> <password> <AID>\n
//    < RCL <OK|NOK|NLG|EAU|EOW|END|ERR>\n
//
//    > SAS <AID>\n
//    < RSA <OK|NOK|ERR>[ <Fname> <Fsize> <Fdata>]\n
//
//    > BID <UID> <password> <AID> <value>\n
//    < RBD <ACC|REF|NLG|ILG|NOK|ERR>\n
//  ```
//
// `<Fdata>` is exactly `<Fsize>` raw bytes and is never interpreted.
//
// === Errors
//
// - a response whose status is `ERR` means the peer could not parse the request
// - a bare `ERR\n` means the peer did not recognise the request at all
//
// Decoding distinguishes a garbled message (ErrMalformedMessage) from a
// well formed message of the wrong type (ErrUnexpectedType) and from an
// explicit ERR (ErrProtocolError).
