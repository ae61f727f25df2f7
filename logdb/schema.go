// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// create a table for pool events
const eventTableSchema = `
create table if not exists event (
	seq integer primary key,
	epoch integer not null,
	kind text not null,
	account blob(20),
	validator blob(20),
	referral blob(20),
	amount text,
	shares text,
	fee text,
	tokenID integer,
	nonce integer,
	detail text
);

CREATE INDEX if not exists kindIndex on event(kind);
CREATE INDEX if not exists accountIndex on event(account);
CREATE INDEX if not exists validatorIndex on event(validator);
CREATE INDEX if not exists tokenIndex on event(tokenID);
`
