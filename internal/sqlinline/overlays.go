package sqlinline

// Overlays are stored as JSONB documents; id and timestamps live in their own
// columns and are merged back into the document on read.

const QCreateOverlaysTable = `--sql 8e81ce9a-2b50-4d4e-8829-89f46972710d
create table if not exists overlays (
  id uuid primary key default gen_random_uuid(),
  doc jsonb not null,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`

const QCreateOverlaysTypeIndex = `--sql 843d0424-a586-4607-9c6a-f531fbafe5c6
create index if not exists overlays_type_idx on overlays ((doc->>'type'));
`

const QCreateOverlaysVisibleIndex = `--sql b2568f69-db08-4c9b-b8ba-d99fa3047a19
create index if not exists overlays_is_visible_idx on overlays ((doc->>'isVisible'));
`

const QCreateOverlaysNameIndex = `--sql a0095248-af4e-4519-8f80-b3e9fc27399f
create index if not exists overlays_name_idx on overlays ((doc->>'name'));
`

const QListOverlays = `--sql d9dd1be8-f023-48dd-b409-55551362a320
select id::text, doc, created_at, updated_at
from overlays
order by created_at desc, id desc;
`

const QGetOverlay = `--sql abdc108e-a4a2-4f78-9516-4011b97e78f9
select id::text, doc, created_at, updated_at
from overlays
where id = $1::uuid;
`

const QInsertOverlay = `--sql be1e312f-8dcd-44f7-bcef-a38539300e15
insert into overlays(doc, created_at, updated_at)
values ($1::jsonb, now(), now())
returning id::text, created_at, updated_at;
`

const QReplaceOverlay = `--sql 224d42b3-ed1d-4c48-a978-8b9ce0bb7c6d
update overlays
set doc = $2::jsonb, updated_at = now()
where id = $1::uuid
returning created_at, updated_at;
`

const QDeleteOverlay = `--sql 74e27eba-8a87-4396-95a1-b6ff33517f9d
delete from overlays
where id = $1::uuid
returning id::text, doc, created_at, updated_at;
`

const QPingOverlays = `--sql 3f0c2a9e-6d1b-4f7a-8e25-1c9b7d40a6f3
select 1;
`

// OverlaySchema lists the statements that create the overlay collection, in order.
var OverlaySchema = []string{
	QCreateOverlaysTable,
	QCreateOverlaysTypeIndex,
	QCreateOverlaysVisibleIndex,
	QCreateOverlaysNameIndex,
}
