// Package script embeds a sandboxed Lua interpreter driving the text
// range engine of one element.
//
// Scripts see a global doc table and range userdata:
//
//	local r = doc.range()
//	local hit = r:find_text("World", false, true)
//	if hit then
//	    hit:select()
//	    emit("found", hit)
//	end
//
// Engine failures are raised as tables with kind and message fields, so
// scripts can inspect them through pcall:
//
//	local ok, err = pcall(function() r:move_endpoint_by_range("start", nil, "end") end)
//	-- err.kind == "NullArgument"
//
// An error a script does not catch is returned by DoString as an engine
// error of the same kind.
package script
