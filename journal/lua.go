package journal

const (
	luaAppendEvents = `
		-- Atomically append events to a stream with a sequence check
		-- KEYS[1] = event list key
		-- ARGV[1] = last sequence the caller has seen (current list length)
		-- ARGV[2..N] = event data (JSON)
		-- Returns: {1, newLength} on success, or {0, currentLength, newEvents}

		local currentLen = redis.call('LLEN', KEYS[1])
		local expected = tonumber(ARGV[1])

		if expected ~= currentLen then
			if expected < currentLen then
				local newEvents = redis.call('LRANGE', KEYS[1], expected, -1)
				return {0, currentLen, newEvents}
			end
			return {0, currentLen, {}}
		end

		local chunkSize = 128
		local startIdx = 2

		while startIdx <= #ARGV do
			local endIdx = math.min(startIdx + chunkSize - 1, #ARGV)
			local chunk = {}
			for i = startIdx, endIdx do
				table.insert(chunk, ARGV[i])
			end
			redis.call('RPUSH', KEYS[1], unpack(chunk))
			startIdx = endIdx + 1
		end

		return {1, redis.call('LLEN', KEYS[1])}
		`

	luaGetEvents = `
		-- Get events from a stream starting at a 1-based sequence
		-- KEYS[1] = event list key
		-- ARGV[1] = starting sequence

		local fromIdx = tonumber(ARGV[1]) - 1
		if fromIdx < 0 then
			fromIdx = 0
		end
		return redis.call('LRANGE', KEYS[1], fromIdx, -1)
		`
)
